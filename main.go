// Command brochuregen turns a company website into a Markdown brochure.
package main

import "github.com/gaurav-prasanna/brochuregen/cmd"

func main() {
	cmd.Execute()
}
