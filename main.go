package main

import "chaintrail/cmd"

func main() {
	cmd.Execute()
}
