package main

import "study-tracker/cmd"

func main() {
	cmd.Execute()
}
