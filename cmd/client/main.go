package main

import "furnitrack/cmd/client/cmd"

func main() {
	cmd.Execute()
}
