package main

import "payment-integrator/cmd"

func main() {
	cmd.Execute()
}
