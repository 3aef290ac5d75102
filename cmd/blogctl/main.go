// Command blogctl is the back office of the blog: categories, locations, staff,
// schema migrations and demo data.
package main

import "blogicum/cmd/blogctl/commands"

func main() {
	commands.Execute()
}
