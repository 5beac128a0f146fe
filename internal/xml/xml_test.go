package xml

import (
	"testing"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPropfindRequestParse(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantProps   []string
		wantAllProp bool
		wantErr     bool
	}{
		{
			name: "named props",
			body: `<?xml version="1.0"?>
				<D:propfind xmlns:D="DAV:">
					<D:prop><D:resourcetype/><D:displayname/></D:prop>
				</D:propfind>`,
			wantProps: []string{"resourcetype", "displayname"},
		},
		{
			name: "allprop",
			body: `<?xml version="1.0"?>
				<D:propfind xmlns:D="DAV:"><D:allprop/></D:propfind>`,
			wantAllProp: true,
		},
		{
			name:        "empty body means allprop",
			body:        "",
			wantAllProp: true,
		},
		{
			name:    "wrong root tag",
			body:    `<?xml version="1.0"?><D:report xmlns:D="DAV:"/>`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var doc *etree.Document
			if tt.body != "" {
				doc = etree.NewDocument()
				require.NoError(t, doc.ReadFromString(tt.body))
			}

			var req PropfindRequest
			err := req.Parse(doc)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantAllProp, req.AllProp)
			assert.Equal(t, tt.wantProps, req.Prop)
		})
	}
}

func TestMultistatusToXML(t *testing.T) {
	resp := MultistatusResponse{
		Responses: []Response{{
			Href: "/caldav/",
			PropStats: []PropStat{
				{
					Props: []Property{
						{Name: TagResourcetype, Children: []Property{
							{Name: TagCollection},
							{Name: "C:" + TagCalendar},
						}},
						{Name: TagDisplayname, Value: "Chemo plan"},
					},
					Status: StatusOK,
				},
				{
					Props:  []Property{{Name: "getetag"}},
					Status: StatusNotFound,
				},
			},
		}},
	}

	doc := resp.ToXML()
	out, err := doc.WriteToString()
	require.NoError(t, err)

	assert.Contains(t, out, `xmlns:D="DAV:"`)
	assert.Contains(t, out, "<D:href>/caldav/</D:href>")
	assert.Contains(t, out, "<C:calendar/>")
	assert.Contains(t, out, "<D:displayname>Chemo plan</D:displayname>")
	assert.Contains(t, out, "<D:status>HTTP/1.1 404 Not Found</D:status>")
}
