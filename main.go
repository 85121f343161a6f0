package main

import "github.com/naka-gawa/github-user-stats/cmd"

func main() {
	cmd.Execute()
}
