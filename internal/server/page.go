package server

import (
	"bytes"
	"html/template"
	"image"
	"image/color"
	"image/jpeg"
	"net/http"
	"sync"

	"github.com/matzehuels/famtree/pkg/viewer"
)

const pageTitle = "Family Tree Viewer"

var pageTmpl = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; margin: 1.5rem; color: #222; }
.banner { background: #fdecea; border: 1px solid #f5c2c0; color: #8a1c13; padding: .5rem .75rem; margin-bottom: 1rem; }
.controls { display: flex; gap: 1.5rem; margin-bottom: 1rem; }
main { display: flex; gap: 1.5rem; align-items: flex-start; }
.canvas { border: 1px solid #ddd; }
.empty { color: #888; padding: 2rem; }
.details { min-width: 14rem; }
.details img { width: 96px; height: 96px; border-radius: 50%; object-fit: cover; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
{{if .Error}}<div class="banner" role="alert">{{.Error}}</div>{{end}}
<div class="controls">
<form action="/upload" method="post" enctype="multipart/form-data">
<input type="file" name="file" accept=".json">
<button type="submit">Upload</button>
</form>
{{- if .AllowURL}}
<form action="/upload" method="post">
<input type="url" name="url" placeholder="https://example.com/family.json">
<button type="submit">Load</button>
</form>
{{- end}}
<form action="/root" method="post">
<select name="root"{{if not .Roots}} disabled{{end}}>
{{- range .Roots}}
<option value="{{.ID}}"{{if .Active}} selected{{end}}>{{.Name}}</option>
{{- else}}
<option>Nothing added</option>
{{- end}}
</select>
<button type="submit"{{if not .Roots}} disabled{{end}}>Show</button>
</form>
</div>
<main>
<div class="canvas">{{if .Frame}}{{.Frame}}{{else}}<p class="empty">Upload a family tree to get started.</p>{{end}}</div>
{{with .Selected}}
<aside class="details">
<img src="{{.Image}}" alt="{{.Name}}">
<h2>{{.Name}}</h2>
{{if .Relationship}}<p>Relation: {{.Relationship}}</p>{{end}}
{{if .Age}}<p>Age: {{.Age}}</p>{{end}}
</aside>
{{end}}
</main>
</body>
</html>
`))

type pageData struct {
	Title    string
	Error    string
	Roots    []rootOption
	Frame    template.HTML
	Selected *memberDetail
	AllowURL bool
}

// renderPage writes the viewer page for st. errMsg, when set, is shown as
// a banner above the unchanged view.
func (s *Server) renderPage(w http.ResponseWriter, st *viewer.State, status int, errMsg string) {
	snap := st.Snapshot()
	data := pageData{
		Title:    pageTitle,
		Error:    errMsg,
		Roots:    rootOptions(snap),
		Frame:    template.HTML(snap.Frame), // generated by pkg/render/svg, text is escaped there
		Selected: s.detail(snap.Selected),
		AllowURL: s.cfg.Fetcher != nil,
	}

	var buf bytes.Buffer
	if err := pageTmpl.Execute(&buf, data); err != nil {
		s.logger.Error("render page", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

const avatarSize = 120

// defaultAvatar is a neutral silhouette served for members without an
// image.
var defaultAvatar = sync.OnceValues(func() ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, avatarSize, avatarSize))
	bg := color.RGBA{0xd9, 0xdd, 0xe1, 0xff}
	fg := color.RGBA{0x9a, 0xa3, 0xad, 0xff}
	for y := range avatarSize {
		for x := range avatarSize {
			c := bg
			if inCircle(x, y, 60, 45, 24) || inCircle(x, y, 60, 125, 50) {
				c = fg
			}
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
})

func inCircle(x, y, cx, cy, r int) bool {
	dx, dy := x-cx, y-cy
	return dx*dx+dy*dy <= r*r
}

func handleDefaultImage(w http.ResponseWriter, _ *http.Request) {
	data, err := defaultAvatar()
	if err != nil {
		http.Error(w, "avatar unavailable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	_, _ = w.Write(data)
}
