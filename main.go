package main

import "github.com/llehouerou/eddy/internal/cli"

func main() {
	cli.Execute()
}
