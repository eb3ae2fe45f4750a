package completions

import "testing"

func TestDecodeEnvelope(t *testing.T) {
	payload := []byte(`{"isSuccess":true,"code":200,"message":"ok","result":{"videoId":12,"videoTitle":"Trip","videoUrl":"https://cdn/v.mp4","thumbnail":"https://cdn/t.jpg"}}`)

	evt, err := newDecoder().Decode(payload)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !evt.Succeeded() {
		t.Fatalf("expected success, got %+v", evt)
	}

	result, ok := evt.JobResult()
	if !ok {
		t.Fatalf("expected parseable result")
	}
	if result.JobID != 12 || result.Title != "Trip" || result.VideoURL != "https://cdn/v.mp4" {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestDecodeRejectsEmptyAndMalformedPayload(t *testing.T) {
	if _, err := newDecoder().Decode(nil); err == nil {
		t.Fatalf("empty payload must fail")
	}
	if _, err := newDecoder().Decode([]byte(`{"isSuccess":`)); err == nil {
		t.Fatalf("malformed payload must fail")
	}
}

func TestJobResultFallbackCases(t *testing.T) {
	cases := []struct {
		name    string
		payload string
	}{
		{"missing result", `{"isSuccess":true,"code":200,"message":"ok"}`},
		{"null result", `{"isSuccess":true,"code":200,"message":"ok","result":null}`},
		{"result wrong shape", `{"isSuccess":true,"code":200,"message":"ok","result":"done"}`},
		{"zero job id", `{"isSuccess":true,"code":200,"message":"ok","result":{"videoTitle":"Trip"}}`},
	}
	for _, tc := range cases {
		evt, err := newDecoder().Decode([]byte(tc.payload))
		if err != nil {
			t.Fatalf("%s: decode: %v", tc.name, err)
		}
		if _, ok := evt.JobResult(); ok {
			t.Fatalf("%s: expected fallback, got parseable result", tc.name)
		}
	}
}

func TestSucceededRequiresSuccessAndCode(t *testing.T) {
	evt := &Event{IsSuccess: true, Code: 500}
	if evt.Succeeded() {
		t.Fatalf("code 500 must not count as success")
	}
	evt = &Event{IsSuccess: false, Code: 200}
	if evt.Succeeded() {
		t.Fatalf("isSuccess=false must not count as success")
	}
}
