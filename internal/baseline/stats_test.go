package baseline

import (
	"math"
	"testing"
)

func TestMeanAndSampleStd(t *testing.T) {
	values := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	if got := Mean(values); got != 5 {
		t.Fatalf("Mean=%v, 期望 5", got)
	}
	want := math.Sqrt(32.0 / 7.0)
	if got := SampleStd(values); math.Abs(got-want) > 1e-12 {
		t.Fatalf("SampleStd=%v, 期望 %v", got, want)
	}
	if got := Mean(nil); got != 0 {
		t.Fatalf("空输入 Mean=%v", got)
	}
	if got := SampleStd([]float64{3}); got != 0 {
		t.Fatalf("单样本 SampleStd=%v", got)
	}
}

func TestMedian(t *testing.T) {
	if got := Median([]float64{3, 1, 2}); got != 2 {
		t.Fatalf("奇数个中位数=%v, 期望 2", got)
	}
	if got := Median([]float64{4, 1, 3, 2}); got != 2.5 {
		t.Fatalf("偶数个中位数=%v, 期望 2.5", got)
	}
	if got := Median(nil); got != 0 {
		t.Fatalf("空输入中位数=%v", got)
	}
}

func TestMAD(t *testing.T) {
	// 中位数 3，偏差 {2,1,0,1,2} → MAD 1
	if got := MAD([]float64{1, 2, 3, 4, 5}); got != 1 {
		t.Fatalf("MAD=%v, 期望 1", got)
	}
	if got := MAD([]float64{7, 7, 7}); got != 0 {
		t.Fatalf("常量序列 MAD=%v, 期望 0", got)
	}
}

func TestModifiedZ(t *testing.T) {
	v := 12.0
	got := ModifiedZ(&v, 10, 2)
	want := 2.0 / (2 * madScale)
	if math.Abs(got-want) > 1e-12 {
		t.Fatalf("z=%v, 期望 %v", got, want)
	}

	if got := ModifiedZ(nil, 10, 2); got != 0 {
		t.Fatalf("空值 z=%v, 期望 0", got)
	}

	// MAD 为 0 时用极小值兜底，结果巨大但有限
	got = ModifiedZ(&v, 10, 0)
	if math.IsInf(got, 0) || math.IsNaN(got) {
		t.Fatalf("MAD=0 时 z 不应为 Inf/NaN: %v", got)
	}
	if got <= 0 {
		t.Fatalf("z 符号错误: %v", got)
	}
}

func TestModifiedZAntiSymmetric(t *testing.T) {
	// 关于中位数镜像的值，z 分数互为相反数
	median, mad := 10.0, 2.0
	for _, x := range []float64{12, 7.5, 10, 23} {
		mirror := 2*median - x
		zx := ModifiedZ(&x, median, mad)
		zm := ModifiedZ(&mirror, median, mad)
		if math.Abs(zx+zm) > 1e-12 {
			t.Fatalf("z(%v)=%v 与 z(%v)=%v 不对称", x, zx, mirror, zm)
		}
	}
}

func TestModifiedZAtMedianWithZeroMAD(t *testing.T) {
	v := 50.0
	if got := ModifiedZ(&v, 50, 0); got != 0 {
		t.Fatalf("z(50, median=50, MAD=0)=%v, 期望 0", got)
	}
}
