package main

import "github.com/joeywang/vidoer/cmd"

func main() {
	cmd.Execute()
}
