package criteria

import (
	"testing"

	"github.com/nao1215/a11yscan/internal/model"
)

func TestPresentationMarkup_Inspect(t *testing.T) {
	t.Parallel()

	doc := mustParse(t, `<html><body>
		<center><font color="red" size="2">a</font></center>
		<table border="1" cellpadding="2"><tr><td bgcolor="#fff" width="50">b</td></tr></table>
		<img src="a.png" width="10" height="10" alt="">
		<select size="3"><option>c</option></select>
		<input size="10">
		<p align="center">d</p><p align="left">e</p>
		<svg width="10" height="10"><rect width="5" height="5"></rect></svg>
	</body></html>`)

	got := NewPresentationMarkup().Inspect(Env{Document: doc})

	wantTags := map[string]int{"center": 1, "font": 1}
	if len(got.Tags) != len(wantTags) {
		t.Errorf("tags = %v, want %v", got.TagNames(), wantTags)
	}
	for tag, n := range wantTags {
		if len(got.Tags[tag]) != n {
			t.Errorf("tag %s: %d elements, want %d", tag, len(got.Tags[tag]), n)
		}
	}

	wantAttrs := map[string]int{
		"color": 1, "size": 2, "border": 1, "cellpadding": 1,
		"bgcolor": 1, "width": 1, "align": 2,
	}
	if len(got.Attributes) != len(wantAttrs) {
		t.Errorf("attributes = %v, want %v", got.AttributeNames(), wantAttrs)
	}
	for attr, n := range wantAttrs {
		if len(got.Attributes[attr]) != n {
			t.Errorf("attribute %s: %d elements, want %d", attr, len(got.Attributes[attr]), n)
		}
	}

	sizes := got.Attributes["size"]
	if len(sizes) == 2 && (sizes[0].Tag != "font" || sizes[1].Tag != "input") {
		t.Errorf("size elements = %s, %s; want font, input in document order", sizes[0].Tag, sizes[1].Tag)
	}
}

func TestPresentationMarkup_Run(t *testing.T) {
	t.Parallel()

	t.Run("clean page is ok", func(t *testing.T) {
		t.Parallel()

		res, err := Invoke(NewPresentationMarkup(), Env{Document: mustParse(t, `<p class="x">a</p>`)}, ExecuteOptions{})
		if err != nil {
			t.Fatal(err)
		}
		if res.Success != model.StatusOK || res.Forbidden != nil {
			t.Errorf("result = %+v, want ok", res)
		}
	})

	t.Run("tag only is a warning", func(t *testing.T) {
		t.Parallel()

		res, err := Invoke(NewPresentationMarkup(), Env{Document: mustParse(t, `<tt>a</tt>`)}, ExecuteOptions{})
		if err != nil {
			t.Fatal(err)
		}
		if res.Success != model.StatusWarning || res.EvidenceCount() != 1 {
			t.Errorf("result = %+v, want one warning", res)
		}
	})
}
