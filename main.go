package main

import "github.com/mpapenbr/iracelog-fuel-strategy-go/cmd"

func main() {
	cmd.Execute()
}
