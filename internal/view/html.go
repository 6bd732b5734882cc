package view

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const pageSkeleton = `<div id="depot">
<section id="stock">
<p id="stock_rations"></p>
<p id="stock_laser_crystals"></p>
<p id="stock_droid_silicon"></p>
<p id="stock_capacitors"></p>
<p id="stock_fuel"></p>
</section>
<form id="signup-form">
<input id="username" name="username">
<input id="password" name="password" type="password">
<input id="passwordConfirm" name="passwordConfirm" type="password">
</form>
<form id="upload-form">
<input id="starshipReport" name="file" type="file">
<p id="upload-instruct"></p>
</form>
<div id="alerts"></div>
</div>`

// RenderHTML writes the page state into the depot page skeleton by element
// id and returns the resulting fragment. Targets missing from the skeleton
// are added to the stock section.
func RenderHTML(page *Page) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(pageSkeleton))
	if err != nil {
		return "", fmt.Errorf("parse page skeleton: %w", err)
	}

	for _, e := range page.Elements() {
		sel := byID(doc.Selection, e.ID)
		if sel.Length() == 0 {
			doc.Find("#stock").AppendHtml("<p></p>")
			sel = doc.Find("#stock p").Last()
			sel.SetAttr("id", e.ID)
		}

		if e.Text != "" || e.Link != nil {
			sel.SetText(e.Text)
		}
		if e.Link != nil {
			sel.AppendHtml("<a></a>")
			sel.Find("a").Last().
				SetAttr("href", e.Link.Href).
				SetAttr("target", "_blank").
				SetText(e.Link.Text)
		}
		if e.Hidden {
			sel.SetAttr("hidden", "")
		}
	}

	alerts := doc.Find("#alerts")
	for _, msg := range page.Alerts() {
		alerts.AppendHtml(`<p role="alert"></p>`)
		alerts.Find("p").Last().SetText(msg)
	}

	return goquery.OuterHtml(doc.Find("#depot"))
}

func byID(s *goquery.Selection, id string) *goquery.Selection {
	return s.Find(fmt.Sprintf("[id=%q]", id))
}
