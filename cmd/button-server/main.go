package main

import "github.com/oshokin/button-presser/cmd/button-server/cmd"

func main() {
	cmd.Execute()
}
