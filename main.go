package main

import "github.com/mouse-blink/portyp/cmd"

func main() {
	cmd.Execute()
}
