package main

import "github.com/weizlogy/desktop-grouping/cmd"

func main() {
	cmd.Execute()
}
