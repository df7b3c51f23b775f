package main

import "github.com/oshokin/button-presser/cmd/button-ctl/cmd"

func main() {
	cmd.Execute()
}
