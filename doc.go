/*
Package asmloader loads a blob of raw machine code into executable memory and jumps to it.

# License

Source codes are under Apache License Version 2.0.

# Underwater

 1. The input file is pure machine code without any header, it is copied verbatim behind a small trampoline (the stub).
 2. The region is mapped RWX through [goloader]'s mmap package, laid out as [stub | payload | int3].
 3. The stub is a precompiled template per architecture. Placeholder magic tags inside it are replaced with the
    addresses of the host functions, then self-referencing addresses are relocated to the real load address.
 4. Before jumping into the payload the stub loads a pointer to the host function table into EBX/RBX:

	0 exit
	1 putchar
	2 getchar
	3 printf
	4 scanf

# Calling convention

 1. x86 (32-bit): cdecl, arguments on the stack, caller cleans the stack. The table holds the libc functions directly.
 2. x86-64 (Windows and System V): arguments are pushed on the stack as 8 byte slots like cdecl,
    the stub wraps every host function and moves the slots into the native argument registers.
    Up to six arguments are supported.

Whatever the payload returns in EAX becomes the exit status, but a payload should rather call exit:

	push 0
	call [rbx+0]

# Notes

 1. This is not a sandbox, the loaded code runs with all privileges of the host process.
 2. Executing requires cgo, without it a region can still be loaded and inspected.

# Tools

The loader cli can be installed by:

	go install github.com/ZenLiuCN/asmloader/asml@latest

The stub templates are assembled from stubs/*.nasm with:

	go run ./stubgen generate

[goloader]: https://github.com/pkujhd/goloader
*/
package asmloader
