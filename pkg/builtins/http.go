package builtins

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/alecthomas/participle/v2/lexer"
	simplejson "github.com/bitly/go-simplejson"
	gojson "github.com/go-json-experiment/json"
	"github.com/jpillora/backoff"

	"github.com/fippli/fip/pkg/value"
)

// httpClient is shared across every http.* builtin the way a single
// *http.Client is shared across a real server's handlers, rather than
// constructed per call.
var httpClient = &http.Client{Timeout: 10 * time.Second}

func init() {
	register(&Builtin{Name: "http.request!", Impure: true, Params: []string{"options"}, Body: httpRequestBang})
	register(&Builtin{Name: "http.get!", Impure: true, Params: []string{"url"}, Body: httpMethodBang("GET")})
	register(&Builtin{Name: "http.post!", Impure: true, Params: []string{"url", "body"}, Body: httpBodyMethodBang("POST")})
	register(&Builtin{Name: "http.put!", Impure: true, Params: []string{"url", "body"}, Body: httpBodyMethodBang("PUT")})
	register(&Builtin{Name: "http.delete!", Impure: true, Params: []string{"url"}, Body: httpMethodBang("DELETE")})
}

// httpMethodBang(url) -> Promise of the decoded response body, retrying
// transient failures with exponential backoff (jpillora/backoff), the same
// library repeat! uses, with its own schedule.
func httpMethodBang(method string) Func {
	return func(_ Caller, pos lexer.Position, args []value.Value) (value.Value, error) {
		url, err := asString(pos, "http."+method, args[0])
		if err != nil {
			return nil, err
		}
		return doHTTP(pos, method, string(url), nil)
	}
}

func httpBodyMethodBang(method string) Func {
	return func(_ Caller, pos lexer.Position, args []value.Value) (value.Value, error) {
		url, err := asString(pos, "http."+method, args[0])
		if err != nil {
			return nil, err
		}
		payload, err := encodeJSON(args[1])
		if err != nil {
			return nil, argErr(pos, "http."+method, "a JSON-encodable body", args[1])
		}
		return doHTTP(pos, method, string(url), payload)
	}
}

// httpRequestBang reads { method, url, body? } from an Object, the general
// form behind the method-specific sugar above.
func httpRequestBang(_ Caller, pos lexer.Position, args []value.Value) (value.Value, error) {
	opts, ok := args[0].(value.ObjectValue)
	if !ok {
		return nil, argErr(pos, "http.request!", "an options Object", args[0])
	}
	methodV := opts.Get("method")
	method := "GET"
	if s, ok := methodV.(value.StringValue); ok {
		method = string(s)
	}
	urlV, ok := opts.Get("url").(value.StringValue)
	if !ok {
		return nil, fmt.Errorf("%s:%d:%d: runtime error: http.request! options.url must be a String",
			pos.Filename, pos.Line, pos.Column)
	}
	var payload []byte
	if b := opts.Get("body"); b.Kind() != value.Null {
		enc, err := encodeJSON(b)
		if err != nil {
			return nil, argErr(pos, "http.request!", "a JSON-encodable body", b)
		}
		payload = enc
	}
	return doHTTP(pos, method, string(urlV), payload)
}

func doHTTP(pos lexer.Position, method, url string, payload []byte) (value.Value, error) {
	p, resolve, reject := value.NewPromise()

	b := &backoff.Backoff{Min: 50 * time.Millisecond, Max: 2 * time.Second, Factor: 2}
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		var bodyReader io.Reader
		if payload != nil {
			bodyReader = bytes.NewReader(payload)
		}
		req, err := http.NewRequest(method, url, bodyReader)
		if err != nil {
			reject(runtimeError(pos, "http.%s %s: %v", method, url, err))
			return p, nil
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		resp, err := httpClient.Do(req)
		if err != nil {
			lastErr = err
			time.Sleep(b.Duration())
			continue
		}
		defer resp.Body.Close()
		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			reject(runtimeError(pos, "http.%s %s: %v", method, url, err))
			return p, nil
		}
		decoded, err := decodeJSON(raw)
		if err != nil {
			resolve(value.StringValue(raw))
			return p, nil
		}
		resolve(decoded)
		return p, nil
	}
	reject(runtimeError(pos, "http.%s %s: %v", method, url, lastErr))
	return p, nil
}

// encodeJSON turns a FIP Value into request-body bytes via
// go-json-experiment/json's typed marshaling, going through a plain
// interface{} bridge since Value has no struct tags of its own.
func encodeJSON(v value.Value) ([]byte, error) {
	return gojson.Marshal(toPlain(v))
}

func toPlain(v value.Value) interface{} {
	switch vv := v.(type) {
	case value.NumberValue:
		f, _ := vv.D.Float64()
		return f
	case value.StringValue:
		return string(vv)
	case value.BoolValue:
		return bool(vv)
	case value.NullValue:
		return nil
	case value.ArrayValue:
		out := make([]interface{}, len(vv.Elements))
		for i, el := range vv.Elements {
			out[i] = toPlain(el)
		}
		return out
	case value.ObjectValue:
		out := make(map[string]interface{}, len(vv.Keys))
		for _, k := range vv.Keys {
			out[k] = toPlain(vv.Values[k])
		}
		return out
	default:
		return nil
	}
}

// decodeJSON decodes an HTTP response body into FIP values using
// bitly/go-simplejson's dynamic tree rather than a fixed struct, since a
// response shape is never known ahead of time.
func decodeJSON(raw []byte) (value.Value, error) {
	js, err := simplejson.NewJson(raw)
	if err != nil {
		return nil, err
	}
	return fromSimplejson(js), nil
}

func fromSimplejson(js *simplejson.Json) value.Value {
	if arr, err := js.Array(); err == nil {
		elems := make([]value.Value, len(arr))
		for i := range arr {
			elems[i] = fromSimplejson(js.GetIndex(i))
		}
		return value.NewArray(elems)
	}
	if obj, err := js.Map(); err == nil {
		keys := make([]string, 0, len(obj))
		values := make(map[string]value.Value, len(obj))
		for k := range obj {
			keys = append(keys, k)
			values[k] = fromSimplejson(js.Get(k))
		}
		return value.NewObject(keys, values)
	}
	if s, err := js.String(); err == nil {
		return value.StringValue(s)
	}
	if f, err := js.Float64(); err == nil {
		return value.NewNumber(decimalFromFloat(f))
	}
	if b, err := js.Bool(); err == nil {
		return value.BoolValue(b)
	}
	return value.Nil
}
