package main

import "otowatch/cmd"

func main() {
	cmd.Execute()
}
