package classpath

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Class file access flags.
const (
	AccPublic uint16 = 0x0001
	AccFinal  uint16 = 0x0010
	AccSuper  uint16 = 0x0020

	AccInterface uint16 = 0x0200
	AccAbstract  uint16 = 0x0400
	AccEnum      uint16 = 0x4000
)

const classMagic = 0xCAFEBABE

// Constant pool tags.
const (
	tagUtf8               = 1
	tagInteger            = 3
	tagFloat              = 4
	tagLong               = 5
	tagDouble             = 6
	tagClass              = 7
	tagString             = 8
	tagFieldref           = 9
	tagMethodref          = 10
	tagInterfaceMethodref = 11
	tagNameAndType        = 12
	tagMethodHandle       = 15
	tagMethodType         = 16
	tagDynamic            = 17
	tagInvokeDynamic      = 18
	tagModule             = 19
	tagPackage            = 20
)

// ErrNotClassFile is returned for input without the class file magic.
var ErrNotClassFile = errors.New("not a class file")

// ClassInfo is the header of a class file.
type ClassInfo struct {
	// Name is the binary name with dots, e.g. com.example.Outer$Inner.
	Name        string
	AccessFlags uint16
}

// Visibility classifies the class the way Class.getModifiers() == PUBLIC
// would: only a plain public class qualifies.
func (c ClassInfo) Visibility() Visibility {
	return VisibilityOf(c.AccessFlags)
}

// VisibilityOf maps access flags to a Visibility. ACC_SUPER is ignored;
// any other modifier besides ACC_PUBLIC makes the class NonPublic.
func VisibilityOf(flags uint16) Visibility {
	if flags&^AccSuper == AccPublic {
		return Public
	}
	return NonPublic
}

// ParseClass reads the class file header up to this_class.
func ParseClass(r io.Reader) (ClassInfo, error) {
	br := bufio.NewReader(r)
	var info ClassInfo

	var header struct {
		Magic     uint32
		Minor     uint16
		Major     uint16
		PoolCount uint16
	}
	if err := binary.Read(br, binary.BigEndian, &header); err != nil {
		return info, fmt.Errorf("%w: %w", ErrNotClassFile, err)
	}
	if header.Magic != classMagic {
		return info, ErrNotClassFile
	}

	utf8 := make(map[uint16]string)
	classes := make(map[uint16]uint16)

	for i := uint16(1); i < header.PoolCount; i++ {
		tag, err := br.ReadByte()
		if err != nil {
			return info, fmt.Errorf("reading constant %d: %w", i, err)
		}

		switch tag {
		case tagUtf8:
			n, err := readU2(br)
			if err != nil {
				return info, err
			}
			buf := make([]byte, n)
			if _, err := io.ReadFull(br, buf); err != nil {
				return info, fmt.Errorf("reading utf8 constant %d: %w", i, err)
			}
			utf8[i] = string(buf)
		case tagClass:
			idx, err := readU2(br)
			if err != nil {
				return info, err
			}
			classes[i] = idx
		case tagString, tagMethodType, tagModule, tagPackage:
			err = skip(br, 2)
		case tagMethodHandle:
			err = skip(br, 3)
		case tagInteger, tagFloat, tagFieldref, tagMethodref, tagInterfaceMethodref,
			tagNameAndType, tagDynamic, tagInvokeDynamic:
			err = skip(br, 4)
		case tagLong, tagDouble:
			// Eight-byte constants take two pool slots.
			err = skip(br, 8)
			i++
		default:
			return info, fmt.Errorf("unknown constant pool tag %d at %d", tag, i)
		}
		if err != nil {
			return info, err
		}
	}

	flags, err := readU2(br)
	if err != nil {
		return info, err
	}
	thisClass, err := readU2(br)
	if err != nil {
		return info, err
	}

	nameIdx, ok := classes[thisClass]
	if !ok {
		return info, fmt.Errorf("this_class %d is not a class constant", thisClass)
	}
	name, ok := utf8[nameIdx]
	if !ok {
		return info, fmt.Errorf("class name %d is not a utf8 constant", nameIdx)
	}

	info.Name = strings.ReplaceAll(name, "/", ".")
	info.AccessFlags = flags
	return info, nil
}

func readU2(r io.Reader) (uint16, error) {
	var b [2]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, fmt.Errorf("truncated class file: %w", err)
	}
	return binary.BigEndian.Uint16(b[:]), nil
}

func skip(r *bufio.Reader, n int) error {
	if _, err := r.Discard(n); err != nil {
		return fmt.Errorf("truncated class file: %w", err)
	}
	return nil
}
