package main

import "github.com/meysamhadeli/talos/cmd"

func main() {
	cmd.Execute()
}
