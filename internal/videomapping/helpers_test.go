package videomapping

import (
	"vidmap/internal/module"
)

// testResolver はテストで使うモジュール一覧
func testResolver() *module.MockDiscovery {
	return module.NewMockDiscovery([]module.Info{
		{Vendor: "JeVoisVendor", Name: "SaveVideo", Kind: module.KindNative},
		{Vendor: "VendorX", Name: "ModA", Kind: module.KindScript},
		{Vendor: "VendorY", Name: "ModB", Kind: module.KindNative},
		{Vendor: "VendorZ", Name: "ModC", Kind: module.KindScript},
		{Vendor: "V", Name: "A", Kind: module.KindNative},
		{Vendor: "V", Name: "B", Kind: module.KindNative},
		{Vendor: "V", Name: "C", Kind: module.KindNative},
		{Vendor: "V", Name: "D", Kind: module.KindNative},
		{Vendor: "V", Name: "E", Kind: module.KindNative},
		{Vendor: "V", Name: "F", Kind: module.KindNative},
		{Vendor: "V", Name: "G", Kind: module.KindScript},
	})
}
