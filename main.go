package main

import "github.com/ellavondegurechaff/gohye-progression/cmd"

func main() {
	cmd.Execute()
}
