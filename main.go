package main

import "github.com/frahmantamala/hrms-portal/cmd"

func main() {
	cmd.Execute()
}
