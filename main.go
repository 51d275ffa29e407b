package main

import "pump-launcher/cmd"

func main() {
	cmd.Execute()
}
