package class

// AccessFlags mirrors the access_flags bitset of the class file format
// (JVM_ACC_* in the source's classfile_constants.h), restricted to the
// flags this core actually inspects.
type AccessFlags uint16

const (
	AccPublic    AccessFlags = 0x0001
	AccPrivate   AccessFlags = 0x0002
	AccProtected AccessFlags = 0x0004
	AccStatic    AccessFlags = 0x0008
	AccFinal     AccessFlags = 0x0010
	AccSuper     AccessFlags = 0x0020
	AccInterface AccessFlags = 0x0200
	AccAbstract  AccessFlags = 0x0400
	AccNative    AccessFlags = 0x0100
)

func (f AccessFlags) IsStatic() bool    { return f&AccStatic != 0 }
func (f AccessFlags) IsNative() bool    { return f&AccNative != 0 }
func (f AccessFlags) IsInterface() bool { return f&AccInterface != 0 }
func (f AccessFlags) IsAbstract() bool  { return f&AccAbstract != 0 }
