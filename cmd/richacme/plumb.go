package main

import (
	"fmt"
	"path/filepath"

	"9fans.net/go/plan9"
	"9fans.net/go/plan9/client"
	"9fans.net/go/plumb"
)

// plumber sends link targets to the plumber's send port.
type plumber struct {
	dir string
	fid *client.Fid
}

// dialPlumber connects to the plumber. Relative link targets resolve
// against the directory holding file.
func dialPlumber(file string) (*plumber, error) {
	fsys, err := client.MountService("plumb")
	if err != nil {
		return nil, fmt.Errorf("mount plumber: %w", err)
	}
	fid, err := fsys.Open("send", plan9.OWRITE)
	if err != nil {
		return nil, fmt.Errorf("open plumber send: %w", err)
	}
	return &plumber{dir: filepath.Dir(file), fid: fid}, nil
}

func (p *plumber) send(url string) error {
	m := &plumb.Message{
		Src:  "richacme",
		Dir:  p.dir,
		Type: "text",
		Data: []byte(url),
	}
	if err := m.Send(p.fid); err != nil {
		return fmt.Errorf("plumb %q: %w", url, err)
	}
	return nil
}

func (p *plumber) Close() error {
	return p.fid.Close()
}
