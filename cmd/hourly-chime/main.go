package main

import "github.com/oshokin/hourly-chime/cmd/hourly-chime/cmd"

func main() {
	cmd.Execute()
}
