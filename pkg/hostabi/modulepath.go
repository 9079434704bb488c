package hostabi

import (
	"os"
	"path/filepath"
	"unsafe"
)

/*
#cgo windows LDFLAGS: -lpsapi
#cgo linux LDFLAGS: -ldl

#ifdef _WIN32
#define WIN32_LEAN_AND_MEAN
#include <windows.h>
#include <stdlib.h>

char* ModulePath() {
    HMODULE module = NULL;
    if (!GetModuleHandleExA(GET_MODULE_HANDLE_EX_FLAG_FROM_ADDRESS |
                           GET_MODULE_HANDLE_EX_FLAG_UNCHANGED_REFCOUNT,
                           (LPCSTR)ModulePath, &module)) {
        return NULL;
    }
    char* buf = (char*)malloc(MAX_PATH * 4);
    if (!buf) {
        return NULL;
    }
    DWORD n = GetModuleFileNameA(module, buf, MAX_PATH * 4);
    if (n == 0 || n >= MAX_PATH * 4) {
        free(buf);
        return NULL;
    }
    return buf;
}

#elif __linux__

#define _GNU_SOURCE
#include <dlfcn.h>
#include <stdlib.h>
#include <string.h>

char* ModulePath() {
    Dl_info info;
    if (dladdr((void*)ModulePath, &info) == 0 || info.dli_fname == NULL) {
        return NULL;
    }
    return strdup(info.dli_fname);
}

#else

#include <stdlib.h>

char* ModulePath() {
    return NULL;
}

#endif
*/
import "C"

// GetModulePath returns the absolute path of the shared library this
// runtime was loaded from, or "" when it cannot be determined.
func GetModulePath() string {
	p := C.ModulePath()
	if p == nil {
		return ""
	}
	defer C.free(unsafe.Pointer(p))
	return C.GoString(p)
}

// ModuleDir returns the folder holding the shared library. When the module
// path is unknown (the CLI build) it falls back to the working directory.
func ModuleDir() string {
	if p := GetModulePath(); p != "" {
		return filepath.Dir(p)
	}
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return wd
}
