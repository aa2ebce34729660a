package main

import "github.com/Digital-Shane/libby/internal/cmd"

func main() {
	cmd.Execute()
}
