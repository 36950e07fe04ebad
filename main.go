package main

import "github.com/jagwell/jagwell/cmd"

// @title        JagWell API
// @version      1.0
// @description  School wellness tracker for admins, doctors and students.
// @BasePath     /api
func main() {
	cmd.Execute()
}
