package protocol_test

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

func TestSchemas_ValidateSamples(t *testing.T) {
	compile := func(name string) *jsonschema.Schema {
		t.Helper()
		p := filepath.Join("..", "..", "schemas", name)
		s, err := jsonschema.Compile(p)
		if err != nil {
			t.Fatalf("compile %s: %v", name, err)
		}
		return s
	}

	validate := func(s *jsonschema.Schema, v any) {
		t.Helper()
		if err := s.Validate(v); err != nil {
			t.Fatalf("validate: %v", err)
		}
	}

	reject := func(s *jsonschema.Schema, v any) {
		t.Helper()
		if err := s.Validate(v); err == nil {
			t.Fatal("validate: invalid sample accepted")
		}
	}

	helloSchema := compile("hello.schema.json")
	welcomeSchema := compile("welcome.schema.json")
	editsSchema := compile("edits.schema.json")
	poseSchema := compile("pose.schema.json")

	var hello any
	_ = json.Unmarshal([]byte(`{
	  "type":"HELLO",
	  "protocol_version":"1.0",
	  "player_name":"alice",
	  "capabilities":{"max_queue":512,"want_animals":true}
	}`), &hello)
	validate(helloSchema, hello)

	var badHello any
	_ = json.Unmarshal([]byte(`{
	  "type":"HELLO",
	  "protocol_version":"1.0"
	}`), &badHello)
	reject(helloSchema, badHello)

	var welcome any
	_ = json.Unmarshal([]byte(`{
	  "type":"WELCOME",
	  "protocol_version":"1.0",
	  "player_id":"8e4f0b06-9a94-4c4f-9c60-1d54c2a50000",
	  "world_params":{
	    "seed":1337,
	    "world_type":"normal",
	    "tick_rate_hz":30,
	    "chunk_size":16,
	    "height":80,
	    "sea_level":24
	  },
	  "edit_seq":42
	}`), &welcome)
	validate(welcomeSchema, welcome)

	var edits any
	_ = json.Unmarshal([]byte(`{
	  "type":"EDITS",
	  "protocol_version":"1.0",
	  "edits":[
	    {"x":10,"y":27,"z":-4,"block":"stone"},
	    {"x":11,"y":27,"z":-4,"block":1}
	  ]
	}`), &edits)
	validate(editsSchema, edits)

	var editsOOB any
	_ = json.Unmarshal([]byte(`{
	  "type":"EDITS",
	  "protocol_version":"1.0",
	  "edits":[{"x":0,"y":80,"z":0,"block":1}]
	}`), &editsOOB)
	reject(editsSchema, editsOOB)

	var pose any
	_ = json.Unmarshal([]byte(`{
	  "type":"POSE",
	  "protocol_version":"1.0",
	  "x":12.5,"y":28.0,"z":-3.25,"yaw":1.57,"pitch":-0.2
	}`), &pose)
	validate(poseSchema, pose)
}
