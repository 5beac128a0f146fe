// Package xml builds the small subset of WebDAV XML the publishing server
// speaks: PROPFIND requests and multistatus responses.
package xml

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
)

// XML namespaces used in responses.
const (
	DAV    = "DAV:"
	CalDAV = "urn:ietf:params:xml:ns:caldav"
)

// Property tags the server can answer.
const (
	TagResourcetype   = "resourcetype"
	TagCollection     = "collection"
	TagCalendar       = "calendar"
	TagDisplayname    = "displayname"
	TagGetContentType = "getcontenttype"
	TagGetCTag        = "getctag"
)

// Propstat status lines.
const (
	StatusOK       = "HTTP/1.1 200 OK"
	StatusNotFound = "HTTP/1.1 404 Not Found"
)

// PropfindRequest is a parsed PROPFIND body.
type PropfindRequest struct {
	Prop    []string
	AllProp bool
}

// Parse reads a PROPFIND request document. An empty or absent body means
// allprop, per RFC 4918.
func (p *PropfindRequest) Parse(doc *etree.Document) error {
	if doc == nil || doc.Root() == nil {
		p.AllProp = true
		return nil
	}
	root := doc.Root()
	if root.Tag != "propfind" {
		return fmt.Errorf("invalid root tag: %s", root.Tag)
	}
	if root.SelectElement("allprop") != nil {
		p.AllProp = true
		return nil
	}
	propElem := root.SelectElement("prop")
	if propElem == nil {
		p.AllProp = true
		return nil
	}
	for _, child := range propElem.ChildElements() {
		p.Prop = append(p.Prop, child.Tag)
	}
	return nil
}

// Property is a single property in a multistatus response. A property with
// Children renders them as nested empty elements (resourcetype members).
type Property struct {
	Name     string
	Value    string
	Children []Property
}

// PropStat groups properties sharing one status line.
type PropStat struct {
	Props  []Property
	Status string
}

// Response is one resource's entry in a multistatus document.
type Response struct {
	Href      string
	PropStats []PropStat
}

// MultistatusResponse is a DAV:multistatus document.
type MultistatusResponse struct {
	Responses []Response
}

// ToXML renders the multistatus document. Property names may carry an
// explicit prefix ("C:calendar"); unprefixed names default to the DAV
// namespace.
func (m *MultistatusResponse) ToXML() *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	root := doc.CreateElement("D:multistatus")
	root.CreateAttr("xmlns:D", DAV)
	root.CreateAttr("xmlns:C", CalDAV)

	for _, resp := range m.Responses {
		respElem := root.CreateElement("D:response")
		respElem.CreateElement("D:href").SetText(resp.Href)
		for _, ps := range resp.PropStats {
			psElem := respElem.CreateElement("D:propstat")
			propElem := psElem.CreateElement("D:prop")
			for _, prop := range ps.Props {
				addProperty(propElem, prop)
			}
			psElem.CreateElement("D:status").SetText(ps.Status)
		}
	}
	return doc
}

func addProperty(parent *etree.Element, p Property) {
	name := p.Name
	if !strings.Contains(name, ":") {
		name = "D:" + name
	}
	elem := parent.CreateElement(name)
	if p.Value != "" {
		elem.SetText(p.Value)
	}
	for _, child := range p.Children {
		addProperty(elem, child)
	}
}
