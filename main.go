/*
Copyright © 2026 Paulo Suderio
*/
package main

import "github.com/Lepied/DiceSoul-sub001/cmd"

func main() {
	cmd.Execute()
}
