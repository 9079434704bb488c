package hostabi

/*
#include <stdlib.h>
#include <string.h>
*/
import "C"
import (
	"unsafe"
)

// Config defines how calls to this extension will be handled
var Config configStruct = configStruct{}

func init() {
	Config.Init()
}

// called by the host to get the version of the extension
//
//export ImpactTrackerVersion
func ImpactTrackerVersion(output *C.char, outputsize C.size_t) {
	replyToHost(Config.version, output, outputsize)
}

// called by the host with a bare command string
//
//export ImpactTracker
func ImpactTracker(output *C.char, outputsize C.size_t, input *C.char) {
	replyToHost(Call(C.GoString(input), nil), output, outputsize)
}

// called by the host with a command and an argument array
//
//export ImpactTrackerArgs
func ImpactTrackerArgs(output *C.char, outputsize C.size_t, input *C.char, argv **C.char, argc C.int) {
	replyToHost(Call(C.GoString(input), parseArgsFromC(argv, argc)), output, outputsize)
}

// parseArgsFromC converts C argv array to Go string slice
func parseArgsFromC(argv **C.char, argc C.int) []string {
	if argc <= 0 || argv == nil {
		return nil
	}
	ptrs := unsafe.Slice(argv, int(argc))
	data := make([]string, 0, len(ptrs))
	for _, p := range ptrs {
		data = append(data, C.GoString(p))
	}
	return data
}

// replyToHost copies a NUL-terminated response into the host's buffer
func replyToHost(response string, output *C.char, outputsize C.size_t) {
	response = truncateReply(response, int(outputsize))
	if outputsize == 0 {
		return
	}
	result := C.CString(response)
	defer C.free(unsafe.Pointer(result))
	C.memmove(unsafe.Pointer(output), unsafe.Pointer(result), C.size_t(len(response)+1))
}
