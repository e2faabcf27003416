package main

import "github.com/vqminh/tour-booking/cmd"

func main() {
	cmd.Execute()
}
