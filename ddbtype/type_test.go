package ddbtype

import "testing"

type stubGPSProber bool

func (s stubGPSProber) HasGPS(string) bool { return bool(s) }

type stubGeoProber bool

func (s stubGeoProber) HasGeoTransform(string) bool { return bool(s) }

func TestExt(t *testing.T) {
	cases := map[string]string{
		"photo.JPG":     "jpg",
		"archive.tar.gz": "gz",
		"noext":         "",
		"trailing.":     "",
	}
	for in, want := range cases {
		if got := Ext(in); got != want {
			t.Errorf("Ext(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestClassifyDirectory(t *testing.T) {
	if got := Classify("some/dir", true, nil, nil); got != Directory {
		t.Fatalf("Classify(dir) = %v, want Directory", got)
	}
}

func TestClassifyPointCloudAndVector(t *testing.T) {
	if got := Classify("cloud.las", false, nil, nil); got != PointCloud {
		t.Fatalf("Classify(.las) = %v, want PointCloud", got)
	}
	if got := Classify("area.geojson", false, nil, nil); got != Vector {
		t.Fatalf("Classify(.geojson) = %v, want Vector", got)
	}
}

func TestClassifyImageWithAndWithoutGPS(t *testing.T) {
	if got := Classify("photo.jpg", false, stubGPSProber(true), nil); got != GeoImage {
		t.Fatalf("Classify(gps image) = %v, want GeoImage", got)
	}
	if got := Classify("photo.jpg", false, stubGPSProber(false), nil); got != Image {
		t.Fatalf("Classify(non-gps image) = %v, want Image", got)
	}
	if got := Classify("photo.jpg", false, nil, nil); got != Image {
		t.Fatalf("Classify(image, nil prober) = %v, want Image", got)
	}
}

func TestClassifyRasterWithAndWithoutGeoTransform(t *testing.T) {
	if got := Classify("ortho.tif", false, nil, stubGeoProber(true)); got != GeoRaster {
		t.Fatalf("Classify(georeferenced raster) = %v, want GeoRaster", got)
	}
	// tif without a geotransform still matches the image extension set, so
	// it degrades to Image rather than Generic.
	if got := Classify("ortho.tif", false, nil, stubGeoProber(false)); got != Image {
		t.Fatalf("Classify(non-georeferenced tif) = %v, want Image", got)
	}
}

func TestClassifyGeneric(t *testing.T) {
	if got := Classify("notes.txt", false, nil, nil); got != Generic {
		t.Fatalf("Classify(.txt) = %v, want Generic", got)
	}
}
