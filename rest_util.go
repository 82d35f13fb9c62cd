package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"reflect"
	"strconv"

	"github.com/go-chi/chi/v5"
	. "github.com/ttpr0/go-transit/util"
	"golang.org/x/exp/slog"
)

type ErrorResponse struct {
	Request string `json:"request"`
	Error   any    `json:"error"`
}

func NewErrorResponse(request string, error any) ErrorResponse {
	return ErrorResponse{
		Request: request,
		Error:   error,
	}
}

func ReadRequestBody[T any](r *http.Request) (T, error) {
	var req T
	data, err := io.ReadAll(r.Body)
	if err != nil {
		return req, err
	}
	err = json.Unmarshal(data, &req)
	if err != nil {
		var t T
		return t, err
	}
	return req, nil
}

func WriteResponse[T any](w http.ResponseWriter, resp T, status int) {
	data, err := json.Marshal(resp)
	if err != nil {
		slog.Error(err.Error())
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(err.Error()))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}

//**********************************************************
// handler results
//**********************************************************

type Result struct {
	result any
	status int
}

func OK[T any](value T) Result {
	return Result{
		result: value,
		status: http.StatusOK,
	}
}

func BadRequest[T any](value T) Result {
	return Result{
		result: value,
		status: http.StatusBadRequest,
	}
}

func ServiceUnavailable[T any](value T) Result {
	return Result{
		result: value,
		status: http.StatusServiceUnavailable,
	}
}

//**********************************************************
// handler mapping
//**********************************************************

// Decodes the json body into F and writes the handler result as json.
func MapPost[F any](app chi.Router, path string, handler func(context.Context, F) Result) {
	app.Post(path, func(w http.ResponseWriter, r *http.Request) {
		slog.Debug("POST " + path)
		body, err := ReadRequestBody[F](r)
		if err != nil {
			slog.Error("failed POST "+path, "error", err)
			WriteResponse(w, NewErrorResponse(path, err.Error()), http.StatusBadRequest)
			return
		}
		res := handler(r.Context(), body)
		if res.status != http.StatusOK {
			slog.Error("failed POST "+path, "status", res.status)
			WriteResponse(w, NewErrorResponse(path, res.result), res.status)
		} else {
			WriteResponse(w, res.result, res.status)
		}
	})
}

// Decodes query parameters into the json-tagged scalar fields of F.
// Unparsable values are rejected with 400.
func MapGet[F any](app chi.Router, path string, handler func(context.Context, F) Result) {
	var val F
	typ := reflect.TypeOf(val)
	num_field := typ.NumField()
	fields := NewList[Triple[int, string, reflect.Kind]](num_field)
	for i := 0; i < num_field; i++ {
		field := typ.Field(i)
		tag := field.Tag.Get("json")
		if tag == "" || tag == "-" {
			continue
		}
		switch field.Type.Kind() {
		case reflect.Bool:
			fields.Add(MakeTriple(i, tag, reflect.Bool))
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			fields.Add(MakeTriple(i, tag, reflect.Int))
		case reflect.Float32, reflect.Float64:
			fields.Add(MakeTriple(i, tag, reflect.Float64))
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			fields.Add(MakeTriple(i, tag, reflect.Uint))
		case reflect.String:
			fields.Add(MakeTriple(i, tag, reflect.String))
		}
	}
	app.Get(path, func(w http.ResponseWriter, r *http.Request) {
		slog.Debug("GET " + path)
		query := r.URL.Query()
		t := reflect.New(typ).Elem()
		for _, field := range fields {
			index := field.A
			name := field.B
			kind := field.C
			value := query.Get(name)
			if value == "" {
				continue
			}
			f := t.Field(index)
			var err error
			switch kind {
			case reflect.Bool:
				var b bool
				b, err = strconv.ParseBool(value)
				f.SetBool(b)
			case reflect.Int:
				var num int64
				num, err = strconv.ParseInt(value, 10, 64)
				f.SetInt(num)
			case reflect.Uint:
				var num uint64
				num, err = strconv.ParseUint(value, 10, 64)
				f.SetUint(num)
			case reflect.Float64:
				var num float64
				num, err = strconv.ParseFloat(value, 64)
				f.SetFloat(num)
			case reflect.String:
				f.SetString(value)
			}
			if err != nil {
				WriteResponse(w, NewErrorResponse(path, "invalid parameter "+name), http.StatusBadRequest)
				return
			}
		}
		value := t.Interface().(F)
		res := handler(r.Context(), value)
		if res.status != http.StatusOK {
			slog.Error("failed GET "+path, "status", res.status)
			WriteResponse(w, NewErrorResponse(path, res.result), res.status)
		} else {
			WriteResponse(w, res.result, res.status)
		}
	})
}
