package main

import "github.com/MinhaKim02/protest-crawling-database/internal/cli"

func main() {
	cli.Execute()
}
