package main

import "nathanbeddoewebdev/xostats/cmd"

func main() {
	cmd.Execute()
}
