// Command devteam plans a project with an AI team and drives code generation
// and testing task by task.
package main

func main() {
	Execute()
}
