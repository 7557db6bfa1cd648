package brochure

import (
	"fmt"
	"strings"

	"github.com/gaurav-prasanna/brochuregen/core"
)

// SystemPrompt is sent with every request.
const SystemPrompt = `You are an assistant that analyzes the contents of a company website ` +
	`and creates a short, engaging brochure about the company for prospective ` +
	`customers, investors and recruits. Respond in markdown. Include details of ` +
	`company culture, customers and careers/jobs if you have the information.`

// UserPrompt interpolates the request and the extracted page. The body
// text is included verbatim.
func UserPrompt(req core.BrochureRequest, p *core.ExtractedPage) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are looking at a company called: %s\n", req.SubjectName)
	fmt.Fprintf(&b, "Website: %s\n", req.SourceURL)
	b.WriteString("Here are the contents of its landing page. Use this information to build ")
	b.WriteString("a short brochure of the company in markdown.\n\n")
	fmt.Fprintf(&b, "Webpage Title:\n%s\n\n", p.Title)
	fmt.Fprintf(&b, "Webpage Contents:\n%s\n", p.BodyText)
	return b.String()
}
