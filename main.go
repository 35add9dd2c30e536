package main

import "github.com/morloc-lang/morloc/cmd"

func main() {
	cmd.Execute()
}
