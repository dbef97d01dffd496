// Copyright ©2022 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dictionary

// knownWords contains a list of commonly encountered words in source
// code that may not be in user dictionaries. Entries are in hunspell
// .dic format and may carry affix flags.
var knownWords = []string{
	// Go
	"golang", "chan/MS", "const/MS", "func/MS", "goroutine/MS", "goto/MS",
	"iota", "struct/MS", "uintptr/MS", "nil/M", "println", "cgo",

	// Python
	"async", "await/DGS", "def/S", "elif", "kwargs", "lambda/MS",
	"nonlocal", "pyc", "pytest", "args", "dunder", "init/MS",

	// Rust
	"impl/S", "mut", "enum/MS", "fn", "crate/MS", "rustc", "usize", "isize",
	"println", "vec/S", "traits",

	// JavaScript and TypeScript
	"const", "let", "typeof", "instanceof", "npm", "nodejs", "tsconfig",
	"webpack", "eslint", "undefined", "falsy", "truthy",

	// C and C++
	"malloc/DGS", "calloc", "realloc/DGS", "sizeof", "typedef/MS", "struct",
	"stdlib", "stdio", "ifdef", "ifndef", "endif", "pragma/MS", "nullptr",
	"constexpr", "noexcept",

	// Built-in types
	"bool/MS", "int/MS", "uint/MS", "float/MS", "byte/MS", "rune/MS",
	"int8", "int16", "int32", "int64", "uint8", "uint16", "uint32", "uint64",
	"float32", "float64", "complex64", "complex128",

	// Commonly used words
	"allocator/MS", "arg/MS", "asm", "boolean/MS", "codec/MS", "endian",
	"endianness", "gcc/M", "glob/SDG", "globbing", "hostname/MS", "http/S",
	"libc/M", "localhost", "mutex/MS", "NaN/S", "rpc/MS", "stderr/M",
	"stdin/M", "stdout/M", "symlink/MS", "toolchain/MS", "ascii",
	"backquote/MS", "charset/MS", "codepoint/MS", "config/MS", "env/MS",
	"filesystem/MS", "hacky", "html/M", "lossy", "substring/MS",
	"syscall/MS", "tokenize/DGS", "tokenizer/MS", "vendor/MSD", "json",
	"yaml", "toml", "regexp/MS", "namespace/MS", "runtime/MS", "param/MS",
	"datetime", "timestamp/MS", "metadata", "middleware", "plugin/MS",
	"repo/MS", "dir/S", "src", "cmd", "util/S", "misc", "impl", "tmp",
	"unicode", "utf", "url/MS", "uri/MS", "api/MS", "cli", "sql", "stdlib",
	"bitmask/MS", "mutable", "immutable", "iterable", "subcommand/MS",
	"whitespace", "unmarshal/DGS", "serializer/MS", "deserialize/DGS",

	// Units
	"KiB/S", "MiB/S", "GiB/S", "TiB/S", "ns", "µs", "ms",

	// Architectures and operating systems
	"aarch", "aix", "amd64", "arm64", "bsd", "darwin", "freebsd", "illumos",
	"ios", "js", "linux", "macos", "mips", "mips64", "netbsd", "openbsd",
	"ppc64", "riscv64", "s390x", "solaris", "wasm", "windows",

	// Common hosters
	"bitbucket/M", "github/M", "gitlab/M", "sourcehut/M",
}
