package main

import "runanalyzer/cmd"

func main() {
	cmd.Execute()
}
