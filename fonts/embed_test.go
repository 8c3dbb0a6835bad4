package fonts

import "testing"

func TestLoadBuiltin(t *testing.T) {
	for _, name := range []string{"embed:lmroman10-regular", "lmsans10-regular", ""} {
		data, err := Load(name)
		if err != nil {
			t.Fatalf("加载 %q 失败: %v", name, err)
		}
		if len(data) == 0 {
			t.Fatalf("%q 字体数据为空", name)
		}
	}
	if _, err := Load("embed:missing"); err == nil {
		t.Fatalf("未知字体应返回错误")
	}
}
