package message

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

func ExampleNewRequest() {
	ctx := context.Background()
	req, err := NewRequest("http://www.example.com/?a=b", RequestOptions{
		Method: "post",
		Body:   "test",
	})
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(req.Method(), req.Headers())

	text, err := req.Text(ctx)
	fmt.Println(text, err)
	_, err = req.Text(ctx)
	fmt.Println(errors.Is(err, ErrBodyUsed))
	// Output:
	// POST Content-Type: text/plain, Content-Length: 4
	// test <nil>
	// true
}

func ExampleNewHeaders() {
	h, _ := NewHeaders(map[string]string{"Content-Type": "text/plain"})
	h.Append("Set-Cookie", "a=1", "b=2")
	h.Set("Referrer", "http://www.example.com/")

	fmt.Println(h.Value("content-type"), h.GetAll("set-cookie"), h.Value("Referer"))
	fmt.Println(h)
	// Output:
	// text/plain [a=1 b=2] http://www.example.com/
	// Content-Type: text/plain, Set-Cookie: a=1, Set-Cookie: b=2, Referer: http://www.example.com/
}

func ExampleBody_Clone() {
	ctx := context.Background()
	b, _ := NewBody(io.NopCloser(strings.NewReader("streamed")), BodyOptions{})
	c, _ := b.Clone()

	first, _ := b.Text(ctx)
	second, _ := c.Text(ctx)
	fmt.Println(b.Kind(), first, second)
	// Output:
	// stream streamed streamed
}

func ExampleSignal() {
	sig := NewSignal()
	req, _ := NewRequest("/", RequestOptions{Body: "test", Signal: sig})
	req.On(EventAbort, func(int64) { fmt.Println("aborted") })

	sig.Abort()
	_, err := req.Text(context.Background())
	fmt.Println(errors.Is(err, ErrBodyDestroyed))
	// Output:
	// aborted
	// true
}

func ExampleNewResponse() {
	res, _ := NewResponse(map[string]string{"foo": "bar"}, ResponseOptions{Status: 404})
	raw, _ := res.MarshalJSON()
	fmt.Println(res.Status(), res.OK())
	fmt.Println(string(raw))
	// Output:
	// 404 false
	// {"status":404,"headers":{"content-length":"13","content-type":"application/json"},"headerListSize":108,"trailer":{},"body":{"kind":"text","state":"unused","bodyUsed":false,"hasBody":true,"buffered":true,"length":13,"headers":{"content-length":"13","content-type":"application/json"}},"started":false,"finished":false,"bytesTransferred":0}
}
