package main

import "github.com/minrisk/risk-management/cmd"

func main() {
	cmd.Execute()
}
