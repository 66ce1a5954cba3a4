package main

import cmd "github.com/rohmanhakim/magnet-resolver/internal/cli"

func main() {
	cmd.Execute()
}
