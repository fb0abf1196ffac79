// Package server exposes the spot detector to clients.
//
// Two transports share one Server value, one detector and one annotation
// store.
//
// # HTTP API
//
// Handler returns the routes:
//
//	GET  /                 liveness: {"mensagem": "Image analysis API is online"}
//	POST /analisar         multipart upload in field "foto"; returns the analysis
//	GET  /imagens/{name}   annotated JPEGs written by earlier analyses
//
// A successful analysis replies 200 with
//
//	{
//	  "arquivo": "photo.jpg",
//	  "percentual_manchas": 3.61,
//	  "num_manchas": 1,
//	  "mensagem": "Clean image",
//	  "spots": [{"area": 361, "bbox": [10, 10, 20, 20]}],
//	  "annotated_image": "annot_<hex>.jpg",
//	  "annotated_url": "/imagens/annot_<hex>.jpg"
//	}
//
// Data that cannot be decoded as an image replies 400 with
// {"erro": "Invalid image or unsupported format."}. A missing upload field is
// also 400, an oversized body 413, and any other failure 500, always with an
// "erro" message. Uploads are buffered in memory up to the configured limit;
// larger multipart parts spill to temporary files that are removed when the
// request ends.
//
// ListenAndServe runs the API until its context is cancelled and then drains
// in-flight requests.
//
// # MCP over stdio
//
// ServeMCP speaks JSON-RPC 2.0, one message per line, and supports
// initialize, tools/list, tools/call and ping. It offers a single tool,
// image_detect_spots, which analyzes an image file on disk and writes the
// annotated copy into the same store the HTTP API serves from.
//
// Decoded images are cached by path for the life of the process.
//
// Tool failures are JSON-RPC errors with code -32000 and the Go error string
// in data. Malformed params use -32602 and unknown methods -32601.
package server
