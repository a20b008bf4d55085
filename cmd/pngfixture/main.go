package main

import "github.com/k1LoW/pngfixture/cmd"

func main() {
	cmd.Execute()
}
