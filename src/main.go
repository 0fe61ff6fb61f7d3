package main

import "PassengerSatisfaction/src/cmd"

func main() {
	cmd.Execute()
}
