package main

import "github.com/dailyflow/dailyreset/internal/cli"

func main() {
	cli.Execute()
}
