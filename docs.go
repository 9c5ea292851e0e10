// package message contains the Request, Response, Body and Headers types,
// a common shape for HTTP messages that servers and clients adapt to. the
// types live in internal packages and are aliased here so that IDEs and
// code editors pick them up from a single import
//
// the package also contains some value aliases from standard library to
// avoid annoying imports
package message

import (
	"net/http"
)

var NoBody = http.NoBody
