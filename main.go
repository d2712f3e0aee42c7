package main

import "github/chapool/bridge-withdraw/cmd"

func main() {
	cmd.Execute()
}
