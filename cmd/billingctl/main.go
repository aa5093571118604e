package main

import "clubfees/cmd/billingctl/cmd"

func main() {
	cmd.Execute()
}
