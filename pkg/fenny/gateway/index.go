package gateway

import _ "embed"

// indexHTML is the single-page chat frontend served at /.
//
//go:embed index.html
var indexHTML []byte
