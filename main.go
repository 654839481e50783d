package main

import "github.com/frahmantamala/catalog-connector/cmd"

func main() {
	cmd.Execute()
}
