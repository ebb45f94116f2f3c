package output

import (
	"encoding/json"
	"io"

	v1 "github.com/jacquelinekay/rttest/api/v1"
)

type JsonOutput struct {
	// Compact suppresses indentation.
	Compact bool
}

func (p *JsonOutput) OutputParam(par v1.Parameter, w io.Writer) error {
	var data []byte
	var err error
	if p.Compact {
		data, err = json.Marshal(par)
	} else {
		data, err = json.MarshalIndent(par, "", "    ")
	}
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}
