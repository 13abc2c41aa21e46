package framework

type TestLogger interface {
	TestStarted(id TestID)
	TestError(id TestID, err error)
	TestFinished(id TestID, status Status, debugOutput CapturedOutput)
	TestSkipped(id TestID, reason string)
	TestIncomplete(id TestID, reason string)
}

type nullTestLogger struct{}

func (n nullTestLogger) TestStarted(TestID)                          {}
func (n nullTestLogger) TestError(TestID, error)                     {}
func (n nullTestLogger) TestFinished(TestID, Status, CapturedOutput) {}
func (n nullTestLogger) TestSkipped(TestID, string)                  {}
func (n nullTestLogger) TestIncomplete(TestID, string)               {}
